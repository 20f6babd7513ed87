package configuration

import (
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	pb_eviction "github.com/buildbarn/bb-storage/pkg/proto/configuration/eviction"
	"github.com/go-playground/validator/v10"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var validate = validator.New()

// Validate checks that all options in the configuration are within
// range, returning an INVALID_ARGUMENT error for the first violation.
func Validate(configuration *ApplicationConfiguration) error {
	if err := validate.Struct(configuration); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
			e := validationErrors[0]
			return status.Errorf(codes.InvalidArgument, "Field %s failed validation on %#v tag with value %v", e.Namespace(), e.Tag(), e.Value())
		}
		return status.Errorf(codes.InvalidArgument, "Invalid configuration: %s", err)
	}

	if _, ok := remoteexecution.DigestFunction_Value_value[strings.ToUpper(configuration.InputRoot.DigestFunction)]; !ok {
		return status.Errorf(codes.InvalidArgument, "Unknown digest function %#v", configuration.InputRoot.DigestFunction)
	}
	if directoryCache := &configuration.DirectoryCache; directoryCache.MaximumCount > 0 {
		if _, ok := pb_eviction.CacheReplacementPolicy_value[directoryCache.CacheReplacementPolicy]; !ok {
			return status.Errorf(codes.InvalidArgument, "Unknown cache replacement policy %#v", directoryCache.CacheReplacementPolicy)
		}
	}
	return nil
}
