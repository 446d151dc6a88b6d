package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/younsl/reapd/internal/models"
	"github.com/younsl/reapd/pkg/utils"
)

// EC2Client discovers target instances and applies lifecycle actions.
// It implements both the reaper's InstanceSource and ActionExecutor.
type EC2Client struct {
	client   *ec2.Client
	region   string
	tagKey   string
	tagValue string
}

// NewEC2Client creates a new EC2Client scoped to one region and one
// provisioning tag.
func NewEC2Client(region, tagKey, tagValue string) (*EC2Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return &EC2Client{
		client:   ec2.NewFromConfig(cfg),
		region:   region,
		tagKey:   tagKey,
		tagValue: tagValue,
	}, nil
}

// ListTargetInstances returns all instances carrying the provisioning
// tag that are currently running or stopped. Other lifecycle states are
// excluded by the API filter and never reach the policy engine.
func (c *EC2Client) ListTargetInstances(ctx context.Context) ([]models.Instance, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("tag:" + c.tagKey),
				Values: []string{c.tagValue},
			},
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"running", "stopped"},
			},
		},
	}

	instances := []models.Instance{}

	paginator := ec2.NewDescribeInstancesPaginator(c.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error querying EC2 instances: %w", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				instances = append(instances, c.toModel(instance))
			}
		}
	}

	return instances, nil
}

// toModel translates an SDK instance into the plain snapshot the policy
// engine works with.
func (c *EC2Client) toModel(instance types.Instance) models.Instance {
	state := models.InstanceState("")
	if instance.State != nil {
		state = models.InstanceState(instance.State.Name)
	}

	m := models.Instance{
		InstanceID:            aws.ToString(instance.InstanceId),
		Name:                  utils.GetName(instance.Tags),
		InstanceType:          string(instance.InstanceType),
		Region:                c.region,
		State:                 state,
		Tags:                  utils.GetTagsMap(instance.Tags),
		StateTransitionReason: aws.ToString(instance.StateTransitionReason),
	}
	if instance.LaunchTime != nil {
		m.LaunchTime = *instance.LaunchTime
	}
	return m
}

// StopInstance issues a single StopInstances call. Stopping an already
// stopping or stopped instance is a no-op on the EC2 side, so retried
// invocations are safe.
func (c *EC2Client) StopInstance(ctx context.Context, instanceID string) error {
	_, err := c.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("error stopping instance %s: %w", instanceID, err)
	}
	return nil
}

// TerminateInstance issues a single TerminateInstances call.
func (c *EC2Client) TerminateInstance(ctx context.Context, instanceID string) error {
	_, err := c.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return fmt.Errorf("error terminating instance %s: %w", instanceID, err)
	}
	return nil
}

// TagInstance writes a single tag on an instance.
func (c *EC2Client) TagInstance(ctx context.Context, instanceID, key, value string) error {
	_, err := c.client.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags: []types.Tag{
			{
				Key:   aws.String(key),
				Value: aws.String(value),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error tagging instance %s: %w", instanceID, err)
	}
	return nil
}
