package landmark

import (
	"fmt"
	"strings"
)

const (
	msgAddOverwrite     = "Landmarks will be covered."
	msgCleared          = "All landmarks have been cleared."
	msgNoLandmarks      = "no landmarks."
	msgReturned         = "You have successfully returned."
	msgNotDied          = "Cannot return, you have not died yet."
	msgInternalError    = "Something went wrong, please try again."
	msgPositionUnknown  = "Your position is not known yet."
	landmarkListSep     = " | "
	landmarkListHeading = "Landmarks: "
)

var helpLines = []string{
	"----- Landmark -----",
	"/ld <MarkName> - Teleport to landmark",
	"/ld to  <MarkName> - Teleport to landmark",
	"/ld add <MarkName> - Add a landmark",
	"/ld del <MarkName> - Delete a landmark",
	"/ld list - List landmarks",
	"/ld clear - Clear landmarks",
	"/ld help - Landmark help",
	"----- Other -----",
	"/bk - Return to the place of death",
}

func msgTeleported(name string) string {
	return fmt.Sprintf("Successfully teleported to '%s' landmark!", name)
}

func msgNotExist(name string) string {
	return fmt.Sprintf("Landmark '%s' does not exist.", name)
}

func msgAdded(name string) string {
	return fmt.Sprintf("Landmark '%s' added successfully!", name)
}

func msgDeleted(name string) string {
	return fmt.Sprintf("Landmark '%s' deleted successfully!", name)
}

func msgInvalidName(reason string) string {
	return fmt.Sprintf("Invalid landmark name: %s.", reason)
}

func msgList(names []string) string {
	return landmarkListHeading + strings.Join(names, landmarkListSep)
}
