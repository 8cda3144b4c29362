// Package services implements the dashboard operations behind the HTTP
// handlers and the CLI.
//
// # Architecture
//
// Uploads land in a Store, a bounded in-memory registry of parsed tables
// keyed by opaque IDs. AdvisingService and WorkshopService read datasets
// from it and run the analysis packages on every request, so a filter
// change never touches stored state.
//
//	store := services.NewStore(services.StoreOptions{MaxDatasets: 32, TTL: 4 * time.Hour}, metrics, logger)
//	go store.Run(ctx)
//
//	svc := services.NewAdvisingService(deps, categorizer, opts)
//	res, err := svc.Upload(ctx, "appointments.csv", file)
//	png, err := svc.Chart(ctx, res.Dataset.ID, advising.Filter{}, "weekday")
//
// # Error Handling
//
// Operations wrap the sentinel errors in errors.go; validation failures are
// returned as *errors.APIError and parse failures as *errors.AppError.
package services
