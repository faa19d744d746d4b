package scheduler_test

import (
	"testing"
	"time"

	"citescan/internal/scheduler"
)

func TestSchedulerStop(t *testing.T) {
	// Create a new Scheduler with a buffer size of 10
	s := scheduler.NewScheduler(10)

	// Channels to track task execution
	taskExecuted := make(chan string, 10)

	// Define a task that signals execution
	testTask := scheduler.Task{
		Name: "TestTask",
		Execute: func() error {
			time.Sleep(100 * time.Millisecond) // Simulate work
			taskExecuted <- "TestTask executed"
			return nil
		},
	}

	// Start the scheduler
	s.RunScheduler()

	// Schedule a few tasks
	for i := 0; i < 5; i++ {
		s.ScheduleHighPriorityTask(testTask)
	}

	// Stop the scheduler
	go func() {
		time.Sleep(500 * time.Millisecond) // Let some tasks execute
		s.StopScheduler()
	}()

	// Wait for tasks to be executed
	executedCount := 0
	timeout := time.After(2 * time.Second)

	for {
		select {
		case msg := <-taskExecuted:
			t.Log(msg)
			executedCount++
			if executedCount == 5 {
				return
			}
		case <-timeout:
			t.Fatalf("Expected all tasks to execute, but only %d completed", executedCount)
		}
	}
}

func TestSchedulerReportsErrors(t *testing.T) {
	s := scheduler.NewScheduler(1)
	s.RunScheduler()

	done := make(chan struct{})
	s.ScheduleHighPriorityTask(scheduler.Task{
		Name: "Failing",
		Execute: func() error {
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not executed")
	}
	s.StopScheduler()
}
