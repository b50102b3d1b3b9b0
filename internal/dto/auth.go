package dto

// AuthResponse is returned from login and register.
type AuthResponse struct {
	Token       string `json:"token"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	LaundryID   int64  `json:"laundry_id"`
	LaundryName string `json:"laundry_name"`
}

// ProfileResponse describes the authenticated principal.
type ProfileResponse struct {
	Name           string `json:"name"`
	Role           string `json:"role"`
	LaundryID      int64  `json:"laundry_id"`
	LaundryName    string `json:"laundry_name"`
	PrinterAddress string `json:"printer_address,omitempty"`
}
