package router

import (
	"net/http"

	"tshirt-bundle/app/controller"
)

type Controllers struct {
	Bundle *controller.BundleController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("GET /ping", pingHandler)

	// Bundle page, one widget instance per load
	mux.HandleFunc("GET /bundle", controllers.Bundle.Page)
	mux.HandleFunc("GET /bundle/thumb", controllers.Bundle.Thumbnail)
	mux.HandleFunc("GET /bundle/{id}/page", controllers.Bundle.InstancePage)
	mux.HandleFunc("GET /bundle/{id}/view", controllers.Bundle.View)
	mux.HandleFunc("GET /bundle/{id}/preview", controllers.Bundle.Preview)

	// Selection
	mux.HandleFunc("POST /bundle/{id}/add", controllers.Bundle.Add)
	mux.HandleFunc("POST /bundle/{id}/remove", controllers.Bundle.Remove)
	mux.HandleFunc("POST /bundle/{id}/qty-add", controllers.Bundle.QtyAdd)

	// Variant picker
	mux.HandleFunc("POST /bundle/{id}/picker/open", controllers.Bundle.OpenPicker)
	mux.HandleFunc("POST /bundle/{id}/picker/choose", controllers.Bundle.ChooseOption)
	mux.HandleFunc("POST /bundle/{id}/picker/confirm", controllers.Bundle.ConfirmPicker)
	mux.HandleFunc("POST /bundle/{id}/picker/cancel", controllers.Bundle.CancelPicker)

	mux.HandleFunc("POST /bundle/{id}/toggle-mobile", controllers.Bundle.ToggleMobile)
	mux.HandleFunc("POST /bundle/{id}/submit", controllers.Bundle.Submit)
}
