package config

import (
	"fmt"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/infra/confloader"
)

// ReadPatch reads a profile file (key=value or YAML) and returns a patch
// holding only the recognized keys it sets.
func ReadPatch(path string) (domain.RecordPatch, error) {
	loader := confloader.NewLoader(
		confloader.WithEnvPrefix(""),
		confloader.WithKnownKeys(recordKeys...),
	)
	if err := loader.LoadFile(path); err != nil {
		return domain.RecordPatch{}, domain.ErrInvalidArgument.WithDetails(path).WithCause(err)
	}

	var patch domain.RecordPatch
	str := func(key string) *string {
		if !loader.Exists(key) {
			return nil
		}
		v := loader.GetString(key)
		return &v
	}

	patch.BaseURL = str(KeyBaseURL)
	patch.APIURL = str(KeyAPIURL)
	patch.DevURL = str(KeyDevURL)
	patch.Token = str(KeyToken)
	if loader.Exists(KeyRenewTime) {
		v := loader.GetInt64(KeyRenewTime)
		if v <= 0 {
			return domain.RecordPatch{}, domain.ErrInvalidArgument.WithDetails(
				fmt.Sprintf("%s must be a positive number of milliseconds", KeyRenewTime))
		}
		patch.RenewTime = &v
	}

	if patch.IsEmpty() {
		return patch, domain.ErrInvalidArgument.WithDetails(path + " sets no recognized keys")
	}
	return patch, nil
}
