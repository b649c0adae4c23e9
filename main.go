package main

import (
	"context"
	"time"

	"github.com/penxle/penxle-go/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal

	// The shutdown budget starts when the signal arrives.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	application.Stop(ctx) // Stop the application gracefully
}
