package constants

const (
	AssignRole       = "assign_role"
	RemoveUser       = "remove_user"
	ModerateRequests = "moderate_requests"
	ManageFlashDrops = "manage_flash_drops"
)
