package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Category, likelihood and impact levels are defined in the risk
// configuration file, so their IDs are free-form slugs rather than
// enumerated constants.

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func validateSlug(kind, id string) error {
	if id == "" {
		return goerr.New(kind + " ID cannot be empty")
	}
	if !slugPattern.MatchString(id) {
		return goerr.New(kind+" ID must be lowercase alphanumeric with hyphens", goerr.V("id", id))
	}
	return nil
}

// CategoryID identifies a risk category from the risk configuration
type CategoryID string

func (c CategoryID) Validate() error {
	return validateSlug("category", string(c))
}

func (c CategoryID) String() string {
	return string(c)
}

// LikelihoodID identifies a likelihood level from the risk configuration
type LikelihoodID string

func (l LikelihoodID) Validate() error {
	return validateSlug("likelihood", string(l))
}

func (l LikelihoodID) String() string {
	return string(l)
}

// ImpactID identifies an impact level from the risk configuration
type ImpactID string

func (i ImpactID) Validate() error {
	return validateSlug("impact", string(i))
}

func (i ImpactID) String() string {
	return string(i)
}
