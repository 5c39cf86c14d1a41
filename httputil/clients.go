package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	API       *http.Client // DataForSEO task submission and polling
	PageSpeed *http.Client // runPagespeed calls; Lighthouse runs are slow
}

func NewClients() *Clients {
	return &Clients{
		API: &http.Client{Timeout: 30 * time.Second},
		PageSpeed: &http.Client{
			Timeout: 90 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
			},
		},
	}
}
