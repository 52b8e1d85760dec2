package seed

import (
	"fmt"

	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
)

var (
	lastNames = []string{
		"Sato", "Suzuki", "Takahashi", "Tanaka", "Ito", "Watanabe", "Yamamoto",
		"Nakamura", "Kobayashi", "Kato", "Yoshida", "Yamada", "Sasaki", "Yamaguchi",
		"Matsumoto", "Inoue", "Kimura", "Hayashi", "Shimizu", "Saito",
	}
	firstNamesM = []string{
		"Haruto", "Sota", "Riku", "Minato", "Yuto", "Ren", "Daiki", "Kaito",
		"Takumi", "Hiroshi", "Kenji", "Satoshi", "Makoto", "Osamu", "Tadashi",
	}
	firstNamesF = []string{
		"Yui", "Aoi", "Sakura", "Hana", "Akari", "Mio", "Rin", "Himari",
		"Yuna", "Kaori", "Naoko", "Emi", "Ayumi", "Chie", "Mariko",
	}

	makerPrefixes = []string{
		"Apex", "Vertex", "Orion", "Polaris", "Meridian", "Cascade", "Summit",
		"Horizon", "Atlas", "Nimbus", "Vector", "Zenith", "Aurora", "Titan",
	}
	makerSuffixes = []string{
		"Motors", "Dynamics", "Industries", "Mobility", "Automotive",
		"Works", "Engineering", "Heavy Industries", "Technologies",
	}
	retailPrefixes = []string{
		"Drive", "Auto", "Motor", "Wheel", "Road", "Cruise", "Gear", "Piston",
	}
	retailSuffixes = []string{
		" Plaza", " Gallery", " Depot", " House", " Station", " Mart", "town",
	}
	supplierPrefixes = []string{
		"Daiichi", "Nippon", "Toyo", "Sanshin", "Meiko", "Kyowa", "Fuji", "Chuo",
	}
	supplierSuffixes = []string{
		" Precision", " Materials", " Forge", " Components", " Metalworks",
		" Supply", " Fabrication",
	}

	productNamesA = []string{
		"Falcon", "Comet", "Stratos", "Verve", "Pulse", "Nova", "Quasar",
		"Mirage", "Sprint", "Legato", "Tempo", "Vista", "Corsa", "Allegro",
	}
	productNamesB = []string{
		"GT", "RS", "Touring", "Custom", "Limited", "Sport", "Prime", "EX",
	}

	buildingNames = []string{
		"Marunouchi Trust Tower", "Shiodome Gate", "Akasaka Crest",
		"Shinjuku Square", "Toranomon Hills Annex", "Nihonbashi Front",
		"Osaki Garden Court", "Hamamatsucho Center",
	}
	factoryNames = []string{
		"Plant No.1", "Plant No.2", "Central Works", "Bayside Plant",
		"Technical Center", "Mother Plant", "East Works", "West Works",
		"Saitama Plant", "Kanagawa Plant", "Prototype Center",
	}
	storeNames = []string{
		"Main Store", "Station Front", "Central Avenue", "Bypass Store",
		"Harbor Store", "Mall Store", "Ginza", "Shinjuku", "Yokohama",
		"Flagship Store", "Mega Store", "Showroom",
	}
)

// PersonName draws a full name for a gender code ("M" or "F").
func PersonName(gender string, rng *entropy.Source) string {
	first := firstNamesM
	if gender == "F" {
		first = firstNamesF
	}
	return lastNames[rng.Intn(len(lastNames))] + " " + first[rng.Intn(len(first))]
}

// CompanyName draws a name fitting the company archetype.
func CompanyName(t company.Type, rng *entropy.Source) string {
	switch t {
	case company.TypeMaker:
		return makerPrefixes[rng.Intn(len(makerPrefixes))] + " " +
			makerSuffixes[rng.Intn(len(makerSuffixes))]
	case company.TypeRetailer:
		return retailPrefixes[rng.Intn(len(retailPrefixes))] +
			retailSuffixes[rng.Intn(len(retailSuffixes))]
	case company.TypeSupplier:
		return supplierPrefixes[rng.Intn(len(supplierPrefixes))] +
			supplierSuffixes[rng.Intn(len(supplierSuffixes))]
	}
	return fmt.Sprintf("Company %d", 100+rng.Intn(900))
}

// ProductName draws a model name, sometimes with a grade suffix.
func ProductName(rng *entropy.Source) string {
	a := productNamesA[rng.Intn(len(productNamesA))]
	if rng.Float() < 0.4 {
		return a
	}
	return a + " " + productNamesB[rng.Intn(len(productNamesB))]
}

// FacilityName draws a name fitting the facility type.
func FacilityName(ft company.FacilityType, rng *entropy.Source) string {
	switch ft {
	case company.FacilityOffice:
		return fmt.Sprintf("%s %dF",
			buildingNames[rng.Intn(len(buildingNames))], 1+rng.Intn(40))
	case company.FacilityFactory:
		return factoryNames[rng.Intn(len(factoryNames))]
	case company.FacilityStore:
		return storeNames[rng.Intn(len(storeNames))]
	}
	return "Unnamed"
}
