package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API under /api/v1
func RegisterRoutes(r gin.IRouter, registration *RegistrationHandler, employees *EmployeeHandler, references *ReferenceHandler) {
	v1 := r.Group("/api/v1")

	reg := v1.Group("/registrations")
	{
		reg.POST("", registration.Start)
		reg.GET("/:id", registration.View)
		reg.DELETE("/:id", registration.Abandon)
		reg.PATCH("/:id/fields", registration.SetFields)
		reg.POST("/:id/next", registration.Next)
		reg.POST("/:id/back", registration.Back)
		reg.POST("/:id/camera/open", registration.OpenCamera)
		reg.POST("/:id/camera/close", registration.CloseCamera)
		reg.POST("/:id/camera/capture", registration.Capture)
		reg.POST("/:id/submit", registration.Submit)
	}

	emp := v1.Group("/employees")
	{
		emp.GET("", employees.ListEmployees)
		emp.GET("/export", employees.ExportEmployees)
	}

	v1.GET("/roles", references.ListRoles)
	v1.GET("/departments", references.ListDepartments)
	v1.GET("/sponsors", references.ListSponsors)
}
