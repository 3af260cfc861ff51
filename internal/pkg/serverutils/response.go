package serverutils

type BaseResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Code:    200,
		Message: message,
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) BaseResponse[any] {
	return BaseResponse[any]{
		Code:    code,
		Message: message,
		Success: false,
	}
}

// ErrorDetail is attached to failed responses so the UI can tell error
// categories apart and show captured tool output.
type ErrorDetail struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

func ErrorResponseWithDetail(code int, message string, detail ErrorDetail) BaseResponse[ErrorDetail] {
	return BaseResponse[ErrorDetail]{
		Code:    code,
		Message: message,
		Success: false,
		Data:    detail,
	}
}
