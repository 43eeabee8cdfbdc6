package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// VarianceLevel classifies a cash drawer variance against configured thresholds
type VarianceLevel int

const (
	VarianceExact    VarianceLevel = 0
	VarianceWarning  VarianceLevel = 1
	VarianceCritical VarianceLevel = 2
)

func (l VarianceLevel) String() string {
	names := [...]string{"Exact", "Warning", "Critical"}
	if int(l) < 0 || int(l) >= len(names) {
		return "Exact"
	}
	return names[l]
}

func (l VarianceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *VarianceLevel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*l = VarianceLevel(i)
		return nil
	}
	switch str {
	case "Exact":
		*l = VarianceExact
	case "Warning":
		*l = VarianceWarning
	case "Critical":
		*l = VarianceCritical
	}
	return nil
}

func (l VarianceLevel) Value() (driver.Value, error) {
	return int64(l), nil
}

func (l *VarianceLevel) Scan(value interface{}) error {
	if value == nil {
		*l = VarianceExact
		return nil
	}
	switch v := value.(type) {
	case int64:
		*l = VarianceLevel(v)
	case int:
		*l = VarianceLevel(v)
	}
	return nil
}
