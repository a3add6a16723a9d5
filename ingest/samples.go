package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/uyouii/capacity-model/common"
	"github.com/uyouii/capacity-model/model"
	"gopkg.in/yaml.v3"
)

// ReadFamilies decodes a YAML document mapping a family name to its samples:
//
//	checkout:
//	  - {concurrency: 10, throughput: 50}
//	  - {concurrency: 20, throughput: 95}
func ReadFamilies(r io.Reader) (map[string][]model.SamplePoint, error) {
	families := map[string][]model.SamplePoint{}
	if err := yaml.NewDecoder(r).Decode(&families); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode samples: %v: %w", err, common.ErrorInvalidValue)
	}
	return families, nil
}
