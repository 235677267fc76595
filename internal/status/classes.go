package status

// classTable maps status levels to CSS classes. Unknown levels get fallback.
type classTable struct {
	classes  map[Level]string
	fallback string
}

func (t classTable) lookup(l Level) string {
	if c, ok := t.classes[l]; ok {
		return c
	}
	return t.fallback
}

// An empty fallback lets templates omit the class attribute entirely; the
// badge and button tables fall back to a visible neutral class instead.
var (
	textClasses = classTable{
		classes: map[Level]string{
			LevelOK:       "text-success",
			LevelInfo:     "text-primary",
			LevelWarning:  "text-warning",
			LevelCritical: "text-danger",
			LevelError:    "text-dark",
		},
	}

	bgClasses = classTable{
		classes: map[Level]string{
			LevelOK:       "bg-success",
			LevelInfo:     "bg-primary",
			LevelWarning:  "bg-warning",
			LevelCritical: "bg-danger",
			LevelError:    "bg-dark",
		},
	}

	badgeClasses = classTable{
		classes: map[Level]string{
			LevelOK:       "badge bg-success",
			LevelInfo:     "badge bg-primary",
			LevelWarning:  "badge bg-warning",
			LevelCritical: "badge bg-danger",
			LevelError:    "badge bg-dark",
		},
		fallback: "badge bg-secondary",
	}

	btnClasses = classTable{
		classes: map[Level]string{
			LevelOK:       "btn-success",
			LevelInfo:     "btn-info",
			LevelWarning:  "btn-warning",
			LevelCritical: "btn-danger",
			LevelError:    "btn-dark",
		},
		fallback: "btn-secondary",
	}

	rowClasses = classTable{
		classes: map[Level]string{
			LevelOK:       "table-success",
			LevelInfo:     "table-info",
			LevelWarning:  "table-warning",
			LevelCritical: "table-danger",
			LevelError:    "table-dark",
		},
	}
)

// TextClass returns the text color class for l, or "".
func TextClass(l Level) string { return textClasses.lookup(l) }

// BgClass returns the background class for l, or "".
func BgClass(l Level) string { return bgClasses.lookup(l) }

// BadgeClass returns the badge class for l, or "badge bg-secondary".
func BadgeClass(l Level) string { return badgeClasses.lookup(l) }

// BtnClass returns the button class for l, or "btn-secondary".
func BtnClass(l Level) string { return btnClasses.lookup(l) }

// RowClass returns the table row class for l, or "".
func RowClass(l Level) string { return rowClasses.lookup(l) }

// StatusRowClass returns the table row class for a raw status code.
func StatusRowClass(code int) string { return RowClass(FromCode(code)) }
