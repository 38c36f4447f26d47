// internal/common/aws/sns_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSNSClient_PublishEvent(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var body map[string]interface{}
		if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &body); err != nil {
			return false
		}
		return aws.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:1:approvals" &&
			aws.ToString(in.MessageAttributes["eventType"].StringValue) == "approval.resolved" &&
			body["turnId"] == "t-1"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	client := NewSNSClientWithAPI(api, "arn:aws:sns:us-east-1:1:approvals")
	id, err := client.PublishEvent(context.Background(), "approval.resolved", map[string]string{"turnId": "t-1"})

	require.NoError(t, err)
	assert.Equal(t, "m-1", id)
	api.AssertExpectations(t)
}

func TestSNSClient_PublishEvent_Error(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	client := NewSNSClientWithAPI(api, "arn")
	_, err := client.PublishEvent(context.Background(), "approval.resolved", map[string]string{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}
