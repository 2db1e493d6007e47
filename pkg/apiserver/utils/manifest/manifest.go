package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// ErrNoDocument is returned when the input holds no YAML or JSON object.
var ErrNoDocument = errors.New("no manifest document found")

const documentSeparator = "---\n"

// Decode reads every non-empty document of a YAML or JSON stream. Numbers
// come back as float64 or int64 depending on the input format, which the
// workload parser accepts either way.
func Decode(data []byte) ([]map[string]interface{}, error) {
	decoder := utilyaml.NewYAMLOrJSONDecoder(bytes.NewReader(data), 4096)
	var docs []map[string]interface{}
	for {
		var doc map[string]interface{}
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("decode manifest document %d: %w", len(docs)+1, err)
		}
		if len(doc) == 0 {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DecodeOne returns the first document of the stream.
func DecodeOne(data []byte) (map[string]interface{}, error) {
	docs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocument
	}
	return docs[0], nil
}

// Encode renders one manifest as YAML with sorted keys.
func Encode(obj map[string]interface{}) ([]byte, error) {
	out, err := yaml.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return out, nil
}

// EncodeAll renders manifests as one multi-document YAML stream.
func EncodeAll(objs []map[string]interface{}) ([]byte, error) {
	var buf strings.Builder
	for i, obj := range objs {
		out, err := Encode(obj)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteString(documentSeparator)
		}
		buf.Write(out)
	}
	return []byte(buf.String()), nil
}
