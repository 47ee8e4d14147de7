package coordinator

import (
	"strings"

	"github.com/arqut/arqut-registry/internal/pkg/apierr"
	"github.com/arqut/arqut-registry/internal/pkg/models"
)

// ServiceForm collects raw user input for registering a service. Validation
// happens locally so bad input never reaches the wire.
type ServiceForm struct {
	Name             string
	Description      string
	Owner            string
	TagsRaw          string
	ServiceType      models.ServiceType
	SupportsDatabase bool
	Proxy            bool
}

// Validate trims the inputs and checks the required fields.
func (f *ServiceForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return apierr.Validation("name is required")
	}
	if strings.TrimSpace(f.Owner) == "" {
		return apierr.Validation("owner is required")
	}
	if !f.ServiceType.Valid() {
		return apierr.Validation("unknown service type")
	}
	return nil
}

// Request builds the create request from the validated form. Inputs are
// trimmed and the tag list is split on commas, dropping empty entries.
func (f *ServiceForm) Request() (models.CreateServiceRequest, error) {
	if err := f.Validate(); err != nil {
		return models.CreateServiceRequest{}, err
	}
	req := models.CreateServiceRequest{
		Name:             strings.TrimSpace(f.Name),
		Owner:            strings.TrimSpace(f.Owner),
		Tags:             splitTags(f.TagsRaw),
		ServiceType:      f.ServiceType,
		SupportsDatabase: f.SupportsDatabase,
		Proxy:            f.Proxy,
	}
	if desc := strings.TrimSpace(f.Description); desc != "" {
		req.Description = &desc
	}
	return req, nil
}

// DependencyForm collects raw user input for a catalog dependency.
type DependencyForm struct {
	Name           string
	Description    string
	Version        string
	DependencyType models.DependencyType
}

// Validate trims the inputs and checks the required fields.
func (f *DependencyForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return apierr.Validation("name is required")
	}
	if strings.TrimSpace(f.Version) == "" {
		return apierr.Validation("version is required")
	}
	if !f.DependencyType.Valid() {
		return apierr.Validation("unknown dependency type")
	}
	return nil
}

// Request builds the create request from the validated form.
func (f *DependencyForm) Request() (models.CreateDependencyRequest, error) {
	if err := f.Validate(); err != nil {
		return models.CreateDependencyRequest{}, err
	}
	req := models.CreateDependencyRequest{
		Name:           strings.TrimSpace(f.Name),
		Version:        strings.TrimSpace(f.Version),
		DependencyType: f.DependencyType,
	}
	if desc := strings.TrimSpace(f.Description); desc != "" {
		req.Description = &desc
	}
	return req, nil
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
