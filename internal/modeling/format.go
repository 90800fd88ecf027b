package modeling

import (
	"fmt"
	"strings"
)

var predictorNames = []string{"Temperature", "Solar Zenith Angle"}

// FormatEquation renders "y = a * Temperature + b * Solar Zenith Angle + c"
func FormatEquation(m *Model) string {
	if m == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("y = ")
	for i, c := range m.Coefficients {
		name := fmt.Sprintf("x%d", i)
		if i < len(predictorNames) {
			name = predictorNames[i]
		}
		fmt.Fprintf(&b, "%.4f * %s + ", c, name)
	}
	fmt.Fprintf(&b, "%.4f", m.Intercept)
	return b.String()
}
