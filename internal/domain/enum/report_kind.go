package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ReportKind distinguishes terminal-level reports, store-level rollups and
// append-only correction records
type ReportKind int

const (
	ReportKindTerminal     ReportKind = 0
	ReportKindConsolidated ReportKind = 1
	ReportKindCorrection   ReportKind = 2
)

func (k ReportKind) String() string {
	names := [...]string{"Terminal", "Consolidated", "Correction"}
	if int(k) < 0 || int(k) >= len(names) {
		return "Terminal"
	}
	return names[k]
}

func (k ReportKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ReportKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = ReportKind(i)
		return nil
	}
	switch str {
	case "Terminal":
		*k = ReportKindTerminal
	case "Consolidated":
		*k = ReportKindConsolidated
	case "Correction":
		*k = ReportKindCorrection
	}
	return nil
}

func (k ReportKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *ReportKind) Scan(value interface{}) error {
	if value == nil {
		*k = ReportKindTerminal
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = ReportKind(v)
	case int:
		*k = ReportKind(v)
	}
	return nil
}
