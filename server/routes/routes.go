package routes

// Register wires the façade's HTTP surface, mirroring walletserver/routes'
// flat mux.Router.HandleFunc registration style.

import (
	"net/http"

	"github.com/gorilla/mux"

	"provenance-chain/server/controllers"
	"provenance-chain/server/middleware"
)

type Controllers struct {
	Batch    *controllers.BatchController
	Read     *controllers.ReadController
	WS       *controllers.WSController
	Metrics  http.Handler
}

func Register(r *mux.Router, c Controllers) {
	r.Use(middleware.Logger)

	r.HandleFunc("/batches", c.Batch.Submit).Methods("POST")

	r.HandleFunc("/agents", c.Read.ListAgents).Methods("GET")
	r.HandleFunc("/agents/{publicKey}", c.Read.Agent).Methods("GET")

	r.HandleFunc("/records", c.Read.ListRecords).Methods("GET")
	r.HandleFunc("/records/{recordId}", c.Read.Record).Methods("GET")
	r.HandleFunc("/records/{recordId}/properties/{name}", c.Read.Property).Methods("GET")
	r.HandleFunc("/records/{recordId}/properties/{name}/history", c.Read.PropertyHistory).Methods("GET")

	r.HandleFunc("/recordTypes", c.Read.ListRecordTypes).Methods("GET")
	r.HandleFunc("/recordTypes/{name}", c.Read.RecordType).Methods("GET")

	r.HandleFunc("/proposals", c.Read.ListProposals).Methods("GET")

	r.HandleFunc("/ws/blocks", c.WS.Blocks)

	if c.Metrics != nil {
		r.Handle("/metrics", c.Metrics).Methods("GET")
	}
}
