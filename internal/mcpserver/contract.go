package mcpserver

// EventFormatContract describes the event payload that LLM consumers
// should send to create_event and update_event.
const EventFormatContract = `# daybook Event Format Contract

Every calendar event is a single timed entry on one day.

## Fields

| Field | Type | Rules |
|---|---|---|
| ` + "`title`" + ` | string | REQUIRED. Trimmed; must not be empty. |
| ` + "`date`" + ` | string | REQUIRED on create, ` + "`YYYY-MM-DD`" + `. On update an omitted date keeps the stored day. |
| ` + "`startTime`" + ` | string | REQUIRED, 24h ` + "`HH:MM`" + ` (` + "`H:MM`" + ` accepted), 00:00 to 23:59. |
| ` + "`endTime`" + ` | string | REQUIRED, same format, strictly after ` + "`startTime`" + ` on the same day. |
| ` + "`category`" + ` | string | One of ` + "`personal`" + ` (default), ` + "`work`" + `, ` + "`reminder`" + `, ` + "`holiday`" + `. |
| ` + "`description`" + ` | string | Optional free text. |
| ` + "`isReminder`" + ` | bool | Listed in upcoming reminders and fired when its start time arrives. |

The server assigns ` + "`id`" + ` and derives ` + "`color`" + ` from the category:
work #3b82f6, personal #10b981, reminder #8b5cf6, holiday #f59e0b.

## Validation errors

A rejected payload returns every failing field at once:

` + "```" + `json
{"error": "validation failed", "fields": {"title": "title required", "endTime": "end must be after start"}}
` + "```" + `

Messages: ` + "`title required`" + `, ` + "`date required`" + `, ` + "`invalid date`" + `,
` + "`invalid start time`" + `, ` + "`invalid end time`" + `, ` + "`end must be after start`" + `,
` + "`invalid category`" + `.

## Rules

1. Events never span midnight. Split multi-day plans into one event per day.
2. There is no recurrence. Create each occurrence separately.
3. Times are local wall-clock times of the calendar; do not send offsets.
4. Upcoming reminders are the five soonest reminder events starting after now.

## Example

` + "```" + `json
{
  "title": "Dentist",
  "date": "2026-11-03",
  "startTime": "14:15",
  "endTime": "15:00",
  "category": "reminder",
  "isReminder": true
}
` + "```" + `
`
