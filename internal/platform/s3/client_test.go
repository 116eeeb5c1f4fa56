package s3

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("boom"), false},
		{"typed no such key", &types.NoSuchKey{}, true},
		{"typed no such bucket", &types.NoSuchBucket{}, true},
		{"typed not found", &types.NotFound{}, true},
		{"api error NoSuchKey", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"api error 404", &smithy.GenericAPIError{Code: "404"}, true},
		{"api error access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFoundError(tt.err))
		})
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("boom"), false},
		{"api error PreconditionFailed", &smithy.GenericAPIError{Code: "PreconditionFailed"}, true},
		{"api error 412", &smithy.GenericAPIError{Code: "412"}, true},
		{"api error NoSuchKey", &smithy.GenericAPIError{Code: "NoSuchKey"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPreconditionFailed(tt.err))
		})
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:9000", "us-east-1", "minio", "minio123")
	require.NoError(t, err)
	assert.NotNil(t, client)

	var _ ObjectStore = client
}
