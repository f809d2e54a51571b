package sandbox

import "github.com/MrEthical07/goUmroh/api"

const imageHost = "https://customer-assets.emergentagent.com/job_79e30beb-e67a-407d-a760-de0870f79c88/artifacts/"

// seedPackages returns the default catalog: three umrah packages followed by
// three leisure tours. IDs and timestamps are assigned on insert.
func seedPackages() []api.Package {
	return []api.Package{
		{
			Name:          "Umrah Spesial Liburan Akhir Tahun",
			Description:   "Paket Umrah 11 hari dengan fasilitas lengkap termasuk city tour Hainan",
			Price:         27500000,
			Duration:      "11 Hari",
			PackageType:   api.PackageUmrah,
			DepartureCity: "Jakarta",
			DepartureDate: "Desember 2025",
			Airline:       "Garuda Indonesia",
			Hotel:         "Zowr Al Baith & Grand Zowr",
			HotelRating:   4,
			Facilities:    []string{"Tiket Pesawat", "Visa", "Transportasi", "City Tour", "Makan", "Hotel Bintang 4", "Pembimbing Ustadz"},
			Itinerary: []string{
				"Hari 1-2: Penerbangan Jakarta - Mekkah",
				"Hari 3-7: Ibadah Umrah di Mekkah",
				"Hari 8-10: Ziarah di Madinah",
				"Hari 11: Kepulangan",
			},
			ImageURL:     imageHost + "q16s8grd_WhatsApp%20Image%202025-11-11%20at%2009.18.26.jpeg",
			Availability: 20,
		},
		{
			Name:          "Umrah Awal Ramadhan",
			Description:   "Paket Umrah 11 hari khusus awal Ramadhan dengan pembimbing berpengalaman",
			Price:         25900000,
			Duration:      "11 Hari",
			PackageType:   api.PackageUmrah,
			DepartureCity: "Jakarta",
			DepartureDate: "Maret 2026",
			Airline:       "Saudia Airlines",
			Hotel:         "Zowr Al Baith & Grand Zowr",
			HotelRating:   4,
			Facilities:    []string{"Tiket Pesawat", "Visa", "Transportasi", "City Tour", "Makan", "Hotel Bintang 4", "Pembimbing Ustadz Abu Nabilah"},
			Itinerary: []string{
				"Hari 1-2: Penerbangan Jakarta - Mekkah",
				"Hari 3-7: Ibadah Umrah di Mekkah (Quad Room)",
				"Hari 8-10: Ziarah di Madinah",
				"Hari 11: Kepulangan",
			},
			ImageURL:     imageHost + "brglhk86_WhatsApp%20Image%202025-11-11%20at%2009.18.28%20%281%29.jpeg",
			Availability: 25,
		},
		{
			Name:          "Umrah Hemat Plus Turki",
			Description:   "Paket Umrah 14 hari dengan bonus city tour Istanbul, Turki",
			Price:         35000000,
			Duration:      "14 Hari",
			PackageType:   api.PackageUmrah,
			DepartureCity: "Jakarta",
			DepartureDate: "April 2026",
			Airline:       "Turkish Airlines",
			Hotel:         "Hotel Bintang 5",
			HotelRating:   5,
			Facilities:    []string{"Tiket Pesawat", "Visa", "Transportasi", "City Tour Istanbul", "Makan", "Hotel Bintang 5"},
			Itinerary: []string{
				"Hari 1-2: Jakarta - Istanbul (Transit)",
				"Hari 3-4: City Tour Istanbul",
				"Hari 5-9: Ibadah Umrah di Mekkah",
				"Hari 10-13: Ziarah di Madinah",
				"Hari 14: Kepulangan",
			},
			ImageURL:     "https://images.unsplash.com/photo-1591604466107-ec97de577aff?w=800",
			Availability: 15,
		},
		{
			Name:          "Tour Dieng",
			Description:   "Paket tour Dieng 3 hari 2 malam dengan pemandangan indah",
			Price:         1500000,
			Duration:      "3 Hari 2 Malam",
			PackageType:   api.PackageTour,
			DepartureCity: "Semarang",
			DepartureDate: "Setiap Weekend",
			Airline:       "Bus Pariwisata",
			Hotel:         "Hotel Dieng",
			HotelRating:   3,
			Facilities:    []string{"Transportasi", "Hotel", "Makan", "Guide", "Tiket Wisata"},
			Itinerary: []string{
				"Hari 1: Penjemputan - Perjalanan ke Dieng",
				"Hari 2: Kawah Sikidang - Telaga Warna - Candi Arjuna",
				"Hari 3: Sunrise Sikunir - Kepulangan",
			},
			ImageURL:     "https://images.unsplash.com/photo-1555400038-63f5ba517a47?w=800",
			Availability: 30,
		},
		{
			Name:          "Bali Paradise Tour",
			Description:   "Paket tour Bali 4 hari 3 malam mengunjungi tempat wisata terbaik",
			Price:         3500000,
			Duration:      "4 Hari 3 Malam",
			PackageType:   api.PackageTour,
			DepartureCity: "Jakarta",
			DepartureDate: "Setiap Hari",
			Airline:       "Garuda Indonesia",
			Hotel:         "Hotel Bintang 4",
			HotelRating:   4,
			Facilities:    []string{"Tiket Pesawat", "Hotel", "Transportasi", "Makan", "Guide", "Tiket Wisata"},
			Itinerary: []string{
				"Hari 1: Jakarta - Bali, Check-in Hotel",
				"Hari 2: Tanah Lot - Uluwatu - Jimbaran",
				"Hari 3: Ubud - Tegalalang - Kintamani",
				"Hari 4: Free Time - Kepulangan",
			},
			ImageURL:     "https://images.unsplash.com/photo-1537996194471-e657df975ab4?w=800",
			Availability: 25,
		},
		{
			Name:          "Thailand Bangkok-Pattaya",
			Description:   "Tour Bangkok-Pattaya 5 hari 4 malam dengan fasilitas lengkap",
			Price:         6500000,
			Duration:      "5 Hari 4 Malam",
			PackageType:   api.PackageTour,
			DepartureCity: "Jakarta",
			DepartureDate: "Setiap Minggu",
			Airline:       "Thai Airways",
			Hotel:         "Hotel Bintang 4",
			HotelRating:   4,
			Facilities:    []string{"Tiket Pesawat", "Visa", "Hotel", "Transportasi", "Makan", "Guide"},
			Itinerary: []string{
				"Hari 1: Jakarta - Bangkok, City Tour",
				"Hari 2: Grand Palace - Wat Arun - Floating Market",
				"Hari 3: Bangkok - Pattaya, Alcazar Show",
				"Hari 4: Coral Island - Pattaya Beach",
				"Hari 5: Shopping - Kepulangan",
			},
			ImageURL:     "https://images.unsplash.com/photo-1508009603885-50cf7c579365?w=800",
			Availability: 20,
		},
	}
}
