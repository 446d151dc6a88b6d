package utils

// validRegions is the set of AWS regions reapd accepts. EC2 and
// CloudWatch are available in all of them.
var validRegions = map[string]bool{
	"us-east-1":      true,
	"us-east-2":      true,
	"us-west-1":      true,
	"us-west-2":      true,
	"af-south-1":     true,
	"ap-east-1":      true,
	"ap-south-1":     true,
	"ap-northeast-1": true,
	"ap-northeast-2": true,
	"ap-northeast-3": true,
	"ap-southeast-1": true,
	"ap-southeast-2": true,
	"ca-central-1":   true,
	"eu-central-1":   true,
	"eu-west-1":      true,
	"eu-west-2":      true,
	"eu-west-3":      true,
	"eu-north-1":     true,
	"eu-south-1":     true,
	"me-south-1":     true,
	"sa-east-1":      true,
}

// IsValidRegion checks if a region is valid
func IsValidRegion(region string) bool {
	return validRegions[region]
}

// GetDefaultRegion returns the default AWS region
func GetDefaultRegion() string {
	return "us-west-2"
}
