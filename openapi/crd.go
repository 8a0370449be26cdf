package openapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/reqshape"
)

const extIntOrString = "x-kubernetes-int-or-string"

// CRDOptions selects the CustomResourceDefinition to import.
type CRDOptions struct {
	// Kind matches spec.names.kind. Empty takes the first CRD in the bundle.
	Kind string
	// Version names the spec.versions entry. Empty takes the storage
	// version, or the first served one.
	Version string
}

// ImportCRD scans a multi-document YAML bundle for a CustomResourceDefinition
// and converts its openAPIV3Schema into shapes. The root shape is named after
// spec.names.kind; nested objects follow the Import naming rules
// (WidgetSpec, WidgetStatus, ...). x-kubernetes-int-or-string fields accept
// any value.
func ImportCRD(data []byte, opt CRDOptions) ([]*reqshape.Shape, *Diag, error) {
	crd, err := findCRD(data, opt.Kind)
	if err != nil {
		return nil, nil, err
	}
	version, err := crd.pick(opt.Version)
	if err != nil {
		return nil, nil, err
	}
	if version.Schema.OpenAPIV3Schema == nil {
		return nil, nil, fmt.Errorf("openapi: crd %s/%s has no openAPIV3Schema", crd.Spec.Names.Kind, version.Name)
	}
	raw, err := json.Marshal(version.Schema.OpenAPIV3Schema)
	if err != nil {
		return nil, nil, fmt.Errorf("openapi: crd schema: %w", err)
	}
	var root openapi3.Schema
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, nil, fmt.Errorf("openapi: crd schema: %w", err)
	}

	diag := &Diag{}
	name := crd.Spec.Names.Kind
	if !isObject(&root) {
		return nil, diag, &reqshape.SchemaError{Shape: name, Reason: "openAPIV3Schema is not an object schema"}
	}
	im := newImporter(diag)
	if err := im.shape(name, &root); err != nil {
		return nil, diag, err
	}
	return im.result(), diag, nil
}

type crdDoc struct {
	Kind string `yaml:"kind"`
	Spec struct {
		Names struct {
			Kind string `yaml:"kind"`
		} `yaml:"names"`
		Versions []crdVersion `yaml:"versions"`
	} `yaml:"spec"`
}

type crdVersion struct {
	Name    string `yaml:"name"`
	Served  bool   `yaml:"served"`
	Storage bool   `yaml:"storage"`
	Schema  struct {
		OpenAPIV3Schema map[string]any `yaml:"openAPIV3Schema"`
	} `yaml:"schema"`
}

func findCRD(data []byte, kind string) (*crdDoc, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc crdDoc
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("openapi: crd bundle: %w", err)
		}
		if doc.Kind != "CustomResourceDefinition" {
			continue
		}
		if kind == "" || doc.Spec.Names.Kind == kind {
			return &doc, nil
		}
	}
	if kind == "" {
		return nil, errors.New("openapi: no CustomResourceDefinition in bundle")
	}
	return nil, fmt.Errorf("openapi: CustomResourceDefinition for kind %q not found", kind)
}

func (d *crdDoc) pick(name string) (*crdVersion, error) {
	var served *crdVersion
	for i := range d.Spec.Versions {
		v := &d.Spec.Versions[i]
		switch {
		case name != "":
			if v.Name == name {
				return v, nil
			}
		case v.Storage:
			return v, nil
		case v.Served && served == nil:
			served = v
		}
	}
	if name == "" && served != nil {
		return served, nil
	}
	return nil, fmt.Errorf("openapi: crd %s has no version %q", d.Spec.Names.Kind, name)
}
