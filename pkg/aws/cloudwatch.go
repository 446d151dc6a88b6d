package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/younsl/reapd/internal/models"
)

// CloudWatchClient reads CPU utilization metrics for EC2 instances.
// It implements the reaper's UtilizationSource.
type CloudWatchClient struct {
	client        *cloudwatch.Client
	region        string
	periodSeconds int32
}

// NewCloudWatchClient creates a new CloudWatchClient for one region.
func NewCloudWatchClient(region string, periodSeconds int32) (*CloudWatchClient, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &CloudWatchClient{
		client:        cloudwatch.NewFromConfig(cfg),
		region:        region,
		periodSeconds: periodSeconds,
	}, nil
}

// AverageCPUUtilization returns the instance's average CPUUtilization
// over [start, end], averaged across all returned datapoints. An empty
// result is reported as absent, not an error; the policy engine decides
// what absence means.
func (c *CloudWatchClient) AverageCPUUtilization(ctx context.Context, instanceID string, start, end time.Time) (models.Utilization, error) {
	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String("AWS/EC2"),
		MetricName: aws.String("CPUUtilization"),
		Dimensions: []cwtypes.Dimension{
			{
				Name:  aws.String("InstanceId"),
				Value: aws.String(instanceID),
			},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(c.periodSeconds),
		Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
	}

	resp, err := c.client.GetMetricStatistics(ctx, input)
	if err != nil {
		return models.Utilization{}, fmt.Errorf("error getting CPUUtilization for %s: %w", instanceID, err)
	}

	if len(resp.Datapoints) == 0 {
		return models.Utilization{}, nil
	}

	sum := 0.0
	count := 0
	for _, dp := range resp.Datapoints {
		if dp.Average != nil {
			sum += *dp.Average
			count++
		}
	}
	if count == 0 {
		return models.Utilization{}, nil
	}

	return models.Utilization{
		AverageCPU: sum / float64(count),
		Present:    true,
	}, nil
}
