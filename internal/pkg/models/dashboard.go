package models

// DashboardStats is the aggregate shown on the dashboard. It is derived
// client-side from the service list, not fetched from a dedicated endpoint.
//
// Two fields keep the historical computation of the product: "endpoints" is
// the total environment count and "deprecated" is the LIBRARY-typed service
// count. Renaming or recomputing them is a product decision, not ours.
type DashboardStats struct {
	TotalServices  int `json:"totalServices"`
	ActiveServices int `json:"activeServices"`
	Endpoints      int `json:"endpoints"`
	Deprecated     int `json:"deprecated"`
}

// ComputeDashboardStats derives the dashboard aggregate from a service list.
func ComputeDashboardStats(services []Service) DashboardStats {
	stats := DashboardStats{TotalServices: len(services)}
	for i := range services {
		svc := &services[i]
		if svc.HasActiveEnvironment() {
			stats.ActiveServices++
		}
		stats.Endpoints += len(svc.Environments)
		if svc.ServiceType == ServiceTypeLibrary {
			stats.Deprecated++
		}
	}
	return stats
}
