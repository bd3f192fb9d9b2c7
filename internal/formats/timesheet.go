package formats

import (
	"github.com/JonMunkholm/lineimport/internal/core"
	"github.com/JonMunkholm/lineimport/internal/store"
)

func init() {
	registerTimesheet()
}

func registerTimesheet() {
	core.Register(core.FormatDefinition{
		Info: core.FormatInfo{
			Key:   "timesheet",
			Label: "Timesheets",
			Description: "One employee's time entries grouped by date. Replaces all time entries; " +
				"employees and projects are kept and linked.",
			Example: `EMP-ID: 12345
EMP-NAME: Jane Doe
TIMESHEETS: 2024-01-15
09:00;12:00;"Worked on feature";PROJ1
13:00;17:30;"Code review";PROJ2`,
		},
		NewRunner: func(env core.Env) core.Runner {
			return newImporter[*core.TimeEntry]("timesheet", env, core.TimesheetParser{}, store.NewTimesheetWriter(env.DB))
		},
	})
}
