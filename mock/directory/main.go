// Mock upstream directory API for local development. Serves synthetic
// provider profiles for all four listing types on :8081.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

const perPage = 50

type profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
	Headline    string `json:"headline"`

	CountryCode string `json:"country_code"`
	RegionID    string `json:"region_id"`
	CityID      string `json:"city_id"`

	Languages   []string `json:"languages"`
	Specialties []string `json:"specialties,omitempty"`
	Services    []string `json:"services,omitempty"`
	Gender      string   `json:"gender,omitempty"`

	LicenseNumber string `json:"license_number,omitempty"`
	Verified      bool   `json:"verified"`
	Licensed      bool   `json:"licensed"`
	Featured      bool   `json:"featured"`
	Activated     bool   `json:"activated"`
	Approved      bool   `json:"approved"`

	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`

	Price *price `json:"price,omitempty"`

	CreatedAt string `json:"created_at"`
}

type price struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type response struct {
	Profiles   []profile  `json:"profiles"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

var (
	names    = []string{"Nguyễn Văn Kiên", "Trần Thị Hoa", "Lê Minh Đức", "Phạm Thu Hà", "Hoàng Văn Nam", "Đỗ Thị Lan"}
	english  = []string{"Kien Nguyen", "Hoa Tran", "Duc Le", "Ha Pham", "Nam Hoang", "Lan Do"}
	langs    = [][]string{{"en", "vi"}, {"vi"}, {"en", "vi", "fr"}, {"vi", "ja"}, {"en", "vi", "zh"}}
	specs    = [][]string{{"trekking"}, {"culture", "food"}, {"trekking", "photography"}, {"culture"}}
	services = [][]string{{"airport-pickup"}, {"day-tours", "airport-pickup"}, {"multi-day-tours"}}
	cities   = []string{"hanoi", "danang", "hcmc", "hue", "sapa"}
	genders  = []string{"female", "male"}
)

func generate(listingType string, count int) []profile {
	profiles := make([]profile, count)
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		p := profile{
			ID:          fmt.Sprintf("%s-%04d", listingType, i),
			Name:        names[i%len(names)],
			EnglishName: english[i%len(english)],
			Headline:    fmt.Sprintf("Local %s #%d", listingType, i),
			CountryCode: "VN",
			RegionID:    "north",
			CityID:      cities[i%len(cities)],
			Languages:   langs[i%len(langs)],
			Verified:    i%3 == 0,
			Licensed:    i%4 == 0,
			Featured:    i%20 == 0,
			Activated:   i%5 != 0,
			Approved:    i%13 != 0,
			ReviewCount: i % 40,
			CreatedAt:   base.Add(time.Duration(i) * 6 * time.Hour).Format(time.RFC3339),
		}

		if i%4 == 0 {
			p.LicenseNumber = fmt.Sprintf("1011%05d", i)
		}
		if i%3 != 0 {
			r := 3.0 + float64(i%21)/10.0
			p.Rating = &r
		}

		switch listingType {
		case "guide":
			p.Specialties = specs[i%len(specs)]
			p.Gender = genders[i%len(genders)]
			if i%2 == 0 {
				p.Price = &price{Amount: int64(300_000 + i*10_000), Currency: "VND"}
			}
		case "agency":
			p.Specialties = specs[i%len(specs)]
		case "dmc", "transport":
			p.Services = services[i%len(services)]
		}

		profiles[i] = p
	}

	return profiles
}

var feeds = map[string][]profile{
	"/api/v1/directory/guides":     generate("guide", 180),
	"/api/v1/directory/agencies":   generate("agency", 40),
	"/api/v1/directory/dmcs":       generate("dmc", 25),
	"/api/v1/directory/transports": generate("transport", 30),
}

func feedHandler(all []profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		start := (page - 1) * perPage
		end := start + perPage
		if start > len(all) {
			start = len(all)
		}
		if end > len(all) {
			end = len(all)
		}

		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(response{
			Profiles:   all[start:end],
			Pagination: pagination{Total: len(all), Page: page, PerPage: perPage},
		})
		if err != nil {
			log.Printf("[Directory] Write error: %v", err)
		}

		log.Printf("[Directory] %s %s?page=%d - 200 OK", r.Method, r.URL.Path, page)
	}
}

func main() {
	for path, profiles := range feeds {
		http.HandleFunc(path, feedHandler(profiles))
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[Directory] Health write error: %v", err)
		}
	})

	log.Println("Mock directory API running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
