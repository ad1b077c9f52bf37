package config

type configResponse struct {
	BaseURL      string `json:"baseUrl"`
	Token        string `json:"token"`
	MessagesPath string `json:"messagesPath"`
}

// Pointers distinguish "leave unchanged" from "set to empty"
type updateConfigRequest struct {
	BaseURL      *string `json:"baseUrl"`
	Token        *string `json:"token"`
	MessagesPath *string `json:"messagesPath"`
}
