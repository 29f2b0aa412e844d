// Package traffic implements the preparation and aggregation pipeline for the
// monthly air-traffic-by-carrier dataset: period decomposition, derived ratio
// metrics, filtering, group-by aggregation and the recovery-vs-baseline
// analysis.
package traffic

// Column names of the ASP_CIE dataset plus the fields derived during
// preparation.
const (
	ColPeriod      = "ANMOIS"   // period code, YYYYMM
	ColCarrier     = "CIE"      // carrier ICAO code
	ColCarrierName = "CIE_NOM"  // carrier commercial name
	ColNationality = "CIE_NAT"  // F=French, E=Foreign
	ColCountry     = "CIE_PAYS" // carrier country
	ColCountryEN   = "CIE_PAYS_EN"
	ColCountryISO3 = "CIE_PAYS_ISO3"
	ColPax         = "CIE_PAX"   // passengers carried
	ColFreight     = "CIE_FRP"   // freight and mail, tons
	ColEquivPax    = "CIE_PEQ"   // equivalent passengers
	ColPaxKm       = "CIE_PKT"   // passenger kilometers
	ColTonKm       = "CIE_TKT"   // ton kilometers
	ColEquivPaxKm  = "CIE_PEQKT" // equivalent passenger kilometers
	ColFlights     = "CIE_VOL"   // commercial flights

	ColYear  = "year"
	ColMonth = "month"

	MetricPaxPerFlight  = "PAX_PER_VOL" // CIE_PAX / CIE_VOL
	MetricFreightPerPax = "FRP_PER_PAX" // CIE_FRP / CIE_PAX
)

// NationalityFrench and NationalityForeign are the CIE_NAT codes.
const (
	NationalityFrench  = "F"
	NationalityForeign = "E"
)
