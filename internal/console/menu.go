package console

import "fmt"

// Action is one numbered entry of a menu.
type Action struct {
	Code  int
	Label string
}

// Every menu ends with these two.
var (
	Back = Action{-1, "Back"}
	Exit = Action{0, "Exit"}
)

var (
	actRegister = Action{1, "Register"}
	actLogin    = Action{2, "Login"}

	actItems       = Action{1, "Items"}
	actMyProfile   = Action{2, "My Profile"}
	actMyContracts = Action{3, "My Contracts"}
	actLogout      = Action{4, "Logout"}

	actAddItem         = Action{1, "Add Item"}
	actViewMyItems     = Action{2, "View My Items"}
	actEditMyItem      = Action{3, "Edit My Item"}
	actDeleteMyItem    = Action{4, "Delete My Item"}
	actBrowseAndBorrow = Action{5, "Show all Items available for borrowing"}

	actEditName        = Action{1, "Edit Item Name"}
	actEditCost        = Action{2, "Edit Item Cost"}
	actEditDescription = Action{3, "Edit Item Description"}
	actEditCategory    = Action{4, "Edit Item Category"}

	actProfileDetails = Action{1, "View My Profile Details"}
	actCredits        = Action{2, "View My Credits"}
	actChangeUsername = Action{3, "Change My Username"}
	actChangePassword = Action{4, "Change My Password"}
	actChangeEmail    = Action{5, "Change My Email"}
	actChangePhone    = Action{6, "Change My Phone Number"}
	actDeleteAccount  = Action{7, "Delete Account"}

	actMembersSimple  = Action{1, "List all members - simple"}
	actMembersVerbose = Action{2, "List all members - verbose"}
	actAllItems       = Action{3, "List all items"}
	actAllContracts   = Action{4, "List contracts"}
	actAdvanceDay     = Action{5, "Advance day count"}
	actAdminLogout    = Action{6, "Logout"}
)

// Menu is a closed set of actions shown under a title.
type Menu struct {
	Title   string
	Actions []Action
}

var (
	authMenu    = Menu{"Register or log in", []Action{actRegister, actLogin, Back, Exit}}
	mainMenu    = Menu{"Main menu", []Action{actItems, actMyProfile, actMyContracts, actLogout, Back, Exit}}
	itemsMenu   = Menu{"Items", []Action{actAddItem, actViewMyItems, actEditMyItem, actDeleteMyItem, actBrowseAndBorrow, Back, Exit}}
	editMenu    = Menu{"Edit item", []Action{actEditName, actEditCost, actEditDescription, actEditCategory, Back, Exit}}
	profileMenu = Menu{"My profile", []Action{actProfileDetails, actCredits, actChangeUsername, actChangePassword, actChangeEmail, actChangePhone, actDeleteAccount, Back, Exit}}
	adminMenu   = Menu{"Administrator", []Action{actMembersSimple, actMembersVerbose, actAllItems, actAllContracts, actAdvanceDay, actAdminLogout, Back, Exit}}
)

// Lookup returns the action with the given code.
func (m Menu) Lookup(code int) (Action, bool) {
	for _, a := range m.Actions {
		if a.Code == code {
			return a, true
		}
	}
	return Action{}, false
}

func (m Menu) String() string {
	s := fmt.Sprintf("\n%s\nPlease select an option from the menu:\n", m.Title)
	for _, a := range m.Actions {
		s += fmt.Sprintf("%d. %s\n", a.Code, a.Label)
	}
	return s
}

// screen identifies which menu the session is in.
type screen int

const (
	screenExit screen = iota
	screenAuth
	screenMain
	screenItems
	screenEditItem
	screenProfile
	screenAdmin
)
