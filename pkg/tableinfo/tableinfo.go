package tableinfo

const (
	PreferencesTableName = "content_preferences"

	PreferenceIDColumn          = "id"
	PreferenceUserIDColumn      = "user_id"
	PreferenceReferenceIDColumn = "reference_id"
	PreferenceTypeColumn        = "type"
	PreferenceStatusColumn      = "status"
	PreferenceFeedIDColumn      = "feed_id"
	PreferenceCreatedAtColumn   = "created_at"
)

// PreferenceColumns is the select list shared by every preference query.
var PreferenceColumns = []string{
	PreferenceIDColumn,
	PreferenceUserIDColumn,
	PreferenceReferenceIDColumn,
	PreferenceTypeColumn,
	PreferenceStatusColumn,
	PreferenceFeedIDColumn,
	PreferenceCreatedAtColumn,
}
