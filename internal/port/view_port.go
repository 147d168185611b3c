package port

// CartCounter is the cart-count display element.
type CartCounter interface {
	SetCartCount(count int, visible bool)
}

// AuthNav owns the login/register links, the user menu and the user name slot.
type AuthNav interface {
	SetAuthLinksVisible(visible bool)
	SetUserMenuVisible(visible bool)
	SetUserName(text string)
}

// FieldHooks styles a form input and its "{fieldID}-error" container.
type FieldHooks interface {
	SetFieldStyle(fieldID string, invalid, valid bool)
	SetFieldMessage(containerID, message string, visible bool)
}

type Navigator interface {
	Navigate(location string)
}

type Confirmer interface {
	Confirm(prompt string) bool
}
