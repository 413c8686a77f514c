package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks the loaded configuration for inconsistencies that
// would only surface later as runtime failures.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		errs = append(errs, errors.New("only one database output can be enabled, disable either sqlite or mysql"))
	}

	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		errs = append(errs, errors.New("sqlite output enabled but no database path set"))
	}

	if settings.Output.MySQL.Enabled {
		if settings.Output.MySQL.Database == "" {
			errs = append(errs, errors.New("mysql output enabled but no database name set"))
		}
		if settings.Output.MySQL.Host == "" {
			errs = append(errs, errors.New("mysql output enabled but no host set"))
		}
	}

	if settings.Review.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("review.pagesize must be positive, got %d", settings.Review.PageSize))
	}

	if settings.Review.ContributionCap <= 0 {
		errs = append(errs, fmt.Errorf("review.contributioncap must be positive, got %d", settings.Review.ContributionCap))
	}

	if settings.Review.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("review.cachettl must not be negative, got %s", settings.Review.CacheTTL))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
