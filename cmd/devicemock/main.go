// Command devicemock is a stand-in for the real device-data API. It serves
// pseudo-random activity batches so the sync path can be exercised locally.
package main

import (
	"encoding/json"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

type deviceRecord struct {
	UserID       string  `json:"user_id"`
	Date         string  `json:"date"`
	ActivityType string  `json:"activity_type"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit"`
}

// Device firmware reports more type variants than the manual-logging enum;
// the service stores them as received.
var deviceActivityTypes = []string{"running", "walking", "hydration_liters", "meditation", "sleep"}

func deviceActivity(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "default_user"
	}

	today := time.Now().UTC()
	batch := make([]deviceRecord, 0, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, -i)
		batch = append(batch, deviceRecord{
			UserID:       userID,
			Date:         day.Format("2006-01-02"),
			ActivityType: deviceActivityTypes[rand.IntN(len(deviceActivityTypes))],
			Value:        math.Round((1.0+rand.Float64()*2.0)*10) / 10,
			Unit:         "minutes",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(batch); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "devicemock"})
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/device-activity", deviceActivity)
	mux.HandleFunc("/health", health)

	addr := ":5001"
	log.Printf("devicemock listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("devicemock server error: %v", err)
	}
}
