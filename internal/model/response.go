package model

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}
