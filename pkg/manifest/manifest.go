// Package manifest parses the YAML deployment manifests accepted by
// `warren apply`, in the spirit of the apply command's original generic
// WarrenResource decoding, but specialized to the single Deployment kind
// and its typed resource-string grammar.
package manifest

import (
	"strconv"
	"strings"

	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"gopkg.in/yaml.v3"
)

// Document is one `---`-separated YAML document.
type Document struct {
	Kind string       `yaml:"kind"`
	Spec DocumentSpec `yaml:"spec"`
}

// DocumentSpec is the body of a Deployment document. Resources are parsed
// as raw strings here and converted by ParseResources.
type DocumentSpec struct {
	Name  string `yaml:"name"`
	Image string `yaml:"image"`
	// Replicas is a pointer so an omitted key (default to 1) can be told
	// apart from an explicit `replicas: 0` (scale-to-zero).
	Replicas  *int         `yaml:"replicas"`
	Resources ResourceSpec `yaml:"resources"`
}

// ResourceSpec is the raw cpu/memory strings as written in a manifest.
type ResourceSpec struct {
	CPU    string `yaml:"cpu"`
	Memory string `yaml:"memory"`
}

// Deployment is a fully parsed, ready-to-submit deployment spec.
type Deployment struct {
	Name      string
	Image     string
	Replicas  int
	Resources types.Resources
}

// ParseAll splits data on `---` document separators and decodes each
// document into a Deployment, in file order.
func ParseAll(data []byte) ([]Deployment, error) {
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))

	var out []Deployment
	for {
		var doc Document
		if err := decoder.Decode(&doc); err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, store.NewInvalidSpecError("manifest", "malformed YAML document: "+err.Error())
		}
		if isBlank(doc) {
			continue
		}
		if doc.Kind != "Deployment" {
			return nil, store.NewInvalidSpecError("kind", "unsupported resource kind: "+doc.Kind)
		}

		d, err := toDeployment(doc.Spec)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func isBlank(doc Document) bool {
	return doc.Kind == "" && doc.Spec.Name == ""
}

func toDeployment(spec DocumentSpec) (Deployment, error) {
	if spec.Name == "" {
		return Deployment{}, store.NewInvalidSpecError("name", "name is required")
	}
	if spec.Image == "" {
		return Deployment{}, store.NewInvalidSpecError("image", "image is required")
	}
	replicas := 1
	if spec.Replicas != nil {
		replicas = *spec.Replicas
	}
	if replicas < 0 {
		return Deployment{}, store.NewInvalidSpecError("replicas", "replicas must be non-negative")
	}

	res, err := ParseResources(spec.Resources)
	if err != nil {
		return Deployment{}, err
	}

	return Deployment{
		Name:      spec.Name,
		Image:     spec.Image,
		Replicas:  replicas,
		Resources: res,
	}, nil
}

// ParseResources converts a manifest's raw cpu/memory strings into
// millicores and megabytes. A blank field parses to zero (unbounded).
//
// cpu: a trailing `m` means millicores directly ("100m" -> 100); a bare
// integer means whole cores ("2" -> 2000). Fractional cores without the
// `m` suffix (e.g. "1.5") are rejected — the design chose integer-only
// inputs to keep the grammar unambiguous.
//
// memory: suffix `Mi` is megabytes, `Gi` is gigabytes (x1024); a bare
// integer is megabytes.
func ParseResources(spec ResourceSpec) (types.Resources, error) {
	cpu, err := parseCPU(spec.CPU)
	if err != nil {
		return types.Resources{}, err
	}
	mem, err := parseMemory(spec.Memory)
	if err != nil {
		return types.Resources{}, err
	}
	return types.Resources{CPUMillis: cpu, MemoryMB: mem}, nil
}

func parseCPU(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "m") {
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "m"), 10, 64)
		if err != nil {
			return 0, store.NewInvalidSpecError("cpu", "expected an integer millicore value before 'm': "+s)
		}
		return n, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, store.NewInvalidSpecError("cpu", "expected an integer core count or a millicore value with 'm' suffix: "+s)
	}
	return n * 1000, nil
}

func parseMemory(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	switch {
	case strings.HasSuffix(s, "Gi"):
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "Gi"), 10, 64)
		if err != nil {
			return 0, store.NewInvalidSpecError("memory", "expected an integer value before 'Gi': "+s)
		}
		return n * 1024, nil
	case strings.HasSuffix(s, "Mi"):
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "Mi"), 10, 64)
		if err != nil {
			return 0, store.NewInvalidSpecError("memory", "expected an integer value before 'Mi': "+s)
		}
		return n, nil
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, store.NewInvalidSpecError("memory", "expected an integer MB value or a suffixed value (Mi/Gi): "+s)
		}
		return n, nil
	}
}
