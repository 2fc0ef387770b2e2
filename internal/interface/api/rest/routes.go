package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth     = RouteApiV1 + "/auth"
	RouteRegister = RouteAuth + "/register"
	RouteLogin    = RouteAuth + "/login"

	// files
	RouteFiles        = RouteApiV1 + "/files"
	RouteFile         = RouteFiles + "/:file_id"
	RouteFileDownload = RouteFile + "/download"

	// users
	RouteUsers     = RouteApiV1 + "/users"
	RouteUser      = RouteUsers + "/:user_id"
	RouteUserFiles = RouteUser + "/files"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
