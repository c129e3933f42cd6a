package models

// ChangeType names the competitor field an audit entry refers to.
type ChangeType string

const (
	ChangeClass        ChangeType = "class_change"
	ChangeName         ChangeType = "name_change"
	ChangeBib          ChangeType = "bib_change"
	ChangeNationality  ChangeType = "nationality_change"
	ChangeRegistration ChangeType = "registration_change"
	ChangeOrganisation ChangeType = "organisation_change"
	ChangeShortName    ChangeType = "short_name_change"
	ChangeStartTime    ChangeType = "start_time_change"
	ChangeFinishTime   ChangeType = "finish_time_change"
	ChangeElapsedTime  ChangeType = "elapsed_time_change"
	ChangeCard         ChangeType = "si_card_change"
	ChangeStatus       ChangeType = "status_change"
	ChangeTeam         ChangeType = "team_change"
	ChangeLeg          ChangeType = "leg_change"
	ChangeCreate       ChangeType = "competitor_create"
)
