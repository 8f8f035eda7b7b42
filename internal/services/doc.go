// Package services holds the application service layer between the HTTP
// transport and the debrief analytics engine. The service owns the
// loaded dataset and its refresh lifecycle; handlers stay thin.
package services
