package schema

import (
	"encoding/json"
	"os"

	"github.com/KaramelBytes/smelens-cli/internal/utils"
)

// Store persists a field mapping as a flat JSON object keyed by the canonical
// field names. A missing or corrupt file is never an error: it simply means
// no saved mapping.
type Store struct {
	Path string
}

// Load reads the persisted mapping. The second return is false when no usable
// mapping exists (absent file, malformed JSON, non-object content). Unknown
// keys are ignored.
func (s Store) Load() (Mapping, bool) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, false
	}
	var raw map[string]*string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, false
	}
	// "null" unmarshals into a nil map without error; only an object counts.
	if raw == nil {
		return nil, false
	}
	m := make(Mapping, len(fields))
	for _, f := range fields {
		m[f] = ""
		if v, ok := raw[string(f)]; ok && v != nil {
			m[f] = *v
		}
	}
	return m, true
}

// Save writes the mapping atomically, emitting every canonical field with
// null for unset entries.
func (s Store) Save(m Mapping) error {
	out := make(map[string]*string, len(fields))
	for _, f := range fields {
		if v := m[f]; v != "" {
			val := v
			out[string(f)] = &val
		} else {
			out[string(f)] = nil
		}
	}
	b, err := utils.PrettyJSON(out)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(s.Path, b)
}
