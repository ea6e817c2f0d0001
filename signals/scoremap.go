package signals

// ScoreMap is an intent→score mapping that remembers first-insertion
// order. Max selection scans in that order and keeps the first maximum,
// so a forced emergency score ties the way the keyword table declares it.
type ScoreMap struct {
	keys   []string
	values map[string]float64
}

func NewScoreMap() *ScoreMap {
	return &ScoreMap{values: make(map[string]float64)}
}

// Set inserts or updates a score. Updating keeps the key's original
// position.
func (m *ScoreMap) Set(key string, value float64) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *ScoreMap) Get(key string) (float64, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *ScoreMap) Len() int {
	return len(m.keys)
}

// Max returns the first key holding the maximum score, in insertion
// order. ok is false for an empty map.
func (m *ScoreMap) Max() (key string, value float64, ok bool) {
	for i, k := range m.keys {
		if v := m.values[k]; i == 0 || v > value {
			key, value = k, v
		}
	}
	return key, value, len(m.keys) > 0
}

// Map returns a plain copy for serialization.
func (m *ScoreMap) Map() map[string]float64 {
	out := make(map[string]float64, len(m.keys))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
