package prompt

import "github.com/charmbracelet/huh"

// Regions are the AWS regions offered in the About step.
var Regions = []string{
	"us-east-1", "us-east-2", "us-west-1", "us-west-2",
	"eu-west-1", "eu-west-2", "eu-central-1",
	"ap-southeast-1", "ap-southeast-2",
	"ap-northeast-1", "ap-northeast-2",
}

// RegionOptions converts Regions to huh options.
func RegionOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Regions))
	for i, r := range Regions {
		opts[i] = huh.NewOption(r, r)
	}
	return opts
}

// IsKnownRegion reports whether r is one of Regions.
func IsKnownRegion(r string) bool {
	for _, known := range Regions {
		if known == r {
			return true
		}
	}
	return false
}
