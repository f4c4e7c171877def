package sink

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// cursor is a forward-only position over the records of one invocation.
type cursor struct {
	records []Record
	pos     int
}

func (c *cursor) next() (Record, bool) {
	if c.pos >= len(c.records) {
		return Record{}, false
	}
	r := c.records[c.pos]
	c.pos++
	return r, true
}

func (c *cursor) done() bool {
	return c.pos >= len(c.records)
}

// Batch is a set of items grouped by destination table.
type Batch struct {
	tables  []string
	items   map[string][]Item
	records []Record
}

func newBatch(capacity int) *Batch {
	return &Batch{
		items:   make(map[string][]Item),
		records: make([]Record, 0, capacity),
	}
}

func (b *Batch) add(table string, r Record, item Item) {
	if _, ok := b.items[table]; !ok {
		b.tables = append(b.tables, table)
	}
	b.items[table] = append(b.items[table], item)
	b.records = append(b.records, r)
}

// Len returns the number of items across all tables.
func (b *Batch) Len() int {
	return len(b.records)
}

// Tables returns the destination tables in first-seen order.
func (b *Batch) Tables() []string {
	return b.tables
}

// Items returns the items for a table in input order.
func (b *Batch) Items(table string) []Item {
	return b.items[table]
}

func (b *Batch) requestItems() map[string][]types.WriteRequest {
	req := make(map[string][]types.WriteRequest, len(b.tables))
	for _, table := range b.tables {
		writes := make([]types.WriteRequest, 0, len(b.items[table]))
		for _, item := range b.items[table] {
			writes = append(writes, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}
		req[table] = writes
	}
	return req
}

// nextBatch takes up to cfg.BatchSize records from the cursor. On error the
// cursor is left after the failing record.
func nextBatch(cfg Config, c *cursor) (*Batch, error) {
	b := newBatch(cfg.BatchSize)
	for b.Len() < cfg.BatchSize {
		r, ok := c.next()
		if !ok {
			break
		}
		table := cfg.TableName(r.Topic)
		if table == "" {
			return nil, fmt.Errorf("record %s: %w", r, ErrEmptyTableName)
		}
		item, err := buildItem(cfg, r)
		if err != nil {
			return nil, err
		}
		b.add(table, r, item)
	}
	return b, nil
}
