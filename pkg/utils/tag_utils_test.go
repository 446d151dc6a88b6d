package utils

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
)

func TestGetTagValue(t *testing.T) {
	tags := []types.Tag{
		{Key: aws.String("Name"), Value: aws.String("builder-01")},
		{Key: aws.String("Provisioner"), Value: aws.String("Terraform via Semaphore")},
		{Key: aws.String("Empty"), Value: nil},
	}

	assert.Equal(t, "builder-01", GetTagValue(tags, "Name"))
	assert.Equal(t, "Terraform via Semaphore", GetTagValue(tags, "Provisioner"))
	assert.Equal(t, "", GetTagValue(tags, "Empty"))
	assert.Equal(t, "", GetTagValue(tags, "Missing"))
}

func TestGetName(t *testing.T) {
	assert.Equal(t, "builder-01", GetName([]types.Tag{
		{Key: aws.String("Name"), Value: aws.String("builder-01")},
	}))
	assert.Equal(t, "", GetName(nil))
}

func TestGetTagsMap(t *testing.T) {
	tags := []types.Tag{
		{Key: aws.String("Name"), Value: aws.String("builder-01")},
		{Key: aws.String("AutoStopTime"), Value: aws.String("2024-10-23T12:34:56Z")},
		{Key: nil, Value: aws.String("ignored")},
	}

	got := GetTagsMap(tags)
	assert.Equal(t, map[string]string{
		"Name":         "builder-01",
		"AutoStopTime": "2024-10-23T12:34:56Z",
	}, got)
}

func TestIsValidRegion(t *testing.T) {
	assert.True(t, IsValidRegion("us-west-2"))
	assert.True(t, IsValidRegion(GetDefaultRegion()))
	assert.False(t, IsValidRegion("mars-north-1"))
	assert.False(t, IsValidRegion(""))
}
