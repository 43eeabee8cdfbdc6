package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// WorkPeriodStatus represents the lifecycle state of a work period (shift)
type WorkPeriodStatus int

const (
	WorkPeriodOpen    WorkPeriodStatus = 0
	WorkPeriodClosing WorkPeriodStatus = 1
	WorkPeriodClosed  WorkPeriodStatus = 2
)

func (s WorkPeriodStatus) String() string {
	names := [...]string{"Open", "Closing", "Closed"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Open"
	}
	return names[s]
}

func (s WorkPeriodStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *WorkPeriodStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = WorkPeriodStatus(i)
		return nil
	}
	switch str {
	case "Open":
		*s = WorkPeriodOpen
	case "Closing":
		*s = WorkPeriodClosing
	case "Closed":
		*s = WorkPeriodClosed
	}
	return nil
}

func (s WorkPeriodStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *WorkPeriodStatus) Scan(value interface{}) error {
	if value == nil {
		*s = WorkPeriodOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = WorkPeriodStatus(v)
	case int:
		*s = WorkPeriodStatus(v)
	}
	return nil
}
