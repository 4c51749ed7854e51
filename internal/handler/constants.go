package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteForgotPassword is the self-service password reset route.
	RouteForgotPassword = "/forgot-password"
	// RouteDashboard is the user dashboard route.
	RouteDashboard = "/dashboard"
	// RouteContact is the contact page route.
	RouteContact = "/contact"
	// RouteAbout is the about page route.
	RouteAbout = "/about"

	// RouteAdmin is the admin console root.
	RouteAdmin = "/admin"
	// RouteAdminLogin is the admin login route.
	RouteAdminLogin = "/admin/login"
	// RouteAdminUsers is the admin user management route.
	RouteAdminUsers = "/admin/users"
	// RouteAdminBlogs is the admin blog management route.
	RouteAdminBlogs = "/admin/blogs"
	// RouteAdminMessages is the admin contact messages route.
	RouteAdminMessages = "/admin/messages"
)

// Role constants matching the users.role column.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// adminPerPage is the page size for admin list views.
const adminPerPage = 20
