package server

// Route path constants
const (
	RouteIndex = "/"

	// Auth Routes
	RouteSignIn  = "/auth/signin"
	RouteSignUp  = "/auth/signup"
	RouteSignOut = "/auth/signout"

	// Registration token consent
	RouteValidate        = "/validate/{token}"
	RouteValidateAccept  = "/validate/{token}/accept"
	RouteValidateDecline = "/validate/{token}/decline"

	RouteUnverifiedAccount = "/unverified-account"
	RouteDocuments         = "/documents"

	// API Routes
	RouteAPIValidate         = "/api/validate"
	RouteAPIRegisterQRCode   = "/api/keycloak/users/qrcode"
	RouteAPISession          = "/api/auth/session"
	RouteAPIValidatePassword = "/api/validate-password"
	RouteHealth              = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)
