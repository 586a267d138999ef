package shared

import "time"

var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// ParseDate accepts YYYY-MM-DD, RFC3339 or the local DD/MM/YYYY form.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range dateLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, err
}
