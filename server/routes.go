package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// Sign in / sign up
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignIn, ChainMiddleware(s.SignInSubmitHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSignUp, ChainMiddleware(s.SignUpPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignUp, ChainMiddleware(s.SignUpSubmitHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignOut, ChainMiddleware(s.SignOutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteUnverifiedAccount, ChainMiddleware(s.UnverifiedAccountHandler(), s.HTMLMiddleWare()...))

	// Registration token consent
	s.RegisterRouteHandler("GET "+RouteValidate, ChainMiddleware(s.ValidatePageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteValidateAccept, ChainMiddleware(s.ValidateAcceptHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteValidateDecline, ChainMiddleware(s.ValidateDeclineHandler(), s.HTMLMiddleWare()...))

	s.RegisterRouteHandler("GET "+RouteDocuments, ChainMiddleware(s.DocumentsHandler(), s.HTMLMiddleWare(s.RequireSession)...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPIValidate, ChainMiddleware(s.APIValidateHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIRegisterQRCode, ChainMiddleware(s.APIRegisterQRCodeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.APISessionHandler(), s.APIMiddleware(s.SessionMiddleware)...))
	s.RegisterRouteHandler("POST "+RouteAPIValidatePassword, ChainMiddleware(s.ValidatePasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.NotFoundHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}
