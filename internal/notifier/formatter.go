package notifier

import (
	"fmt"
	"strings"

	"ResultsMonitor/internal/model"
)

// ChangeTitle is the title of every change notification.
const ChangeTitle = "New Final Results!"

// FormatChanges renders changed modules as "CS101: 85, CS102: 60", sorted by module.
func FormatChanges(changed model.ResultSet) string {
	parts := make([]string, 0, len(changed))
	for _, module := range changed.Modules() {
		parts = append(parts, fmt.Sprintf("%s: %d", module, changed[module].FinalMark))
	}
	return strings.Join(parts, ", ")
}
