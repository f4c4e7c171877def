package sink

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// isThrottlingError reports whether DynamoDB signalled a capacity or rate
// limit rather than rejecting the write.
func isThrottlingError(err error) bool {
	if err == nil {
		return false
	}

	var throughputErr *types.ProvisionedThroughputExceededException
	var limitErr *types.LimitExceededException
	var requestLimitErr *types.RequestLimitExceeded
	if errors.As(err, &throughputErr) || errors.As(err, &limitErr) || errors.As(err, &requestLimitErr) {
		return true
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ProvisionedThroughputExceededException",
			"LimitExceededException",
			"RequestLimitExceeded",
			"ThrottlingException":
			return true
		}
	}
	return false
}
