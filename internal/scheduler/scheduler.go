package scheduler

import (
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

type Task struct {
	Name    string
	Execute func() error
}

type Scheduler struct {
	taskQueue       chan Task
	lowPriorityLock sync.Mutex
	stopChan        chan struct{}
	wg              sync.WaitGroup
	log             commonlog.Logger
}

// NewScheduler creates a new Scheduler with the specified queue size
func NewScheduler(queueSize int) *Scheduler {
	return &Scheduler{
		taskQueue: make(chan Task, queueSize),
		stopChan:  make(chan struct{}),
		log:       commonlog.GetLogger("scheduler"),
	}
}

func (s *Scheduler) runTask(task Task) {
	s.log.Debugf("executing task %s", task.Name)
	if err := task.Execute(); err != nil {
		s.log.Errorf("task %s failed: %s", task.Name, err.Error())
	}
	s.wg.Done()
}

// RunScheduler starts the scheduler loop
func (s *Scheduler) RunScheduler() {
	go func() {
		for {
			select {
			case task, ok := <-s.taskQueue:
				if !ok {
					// Channel closed, exit the loop
					return
				}
				s.runTask(task)
			case <-s.stopChan:
				// Stop signal received, drain the taskQueue and exit
				for task := range s.taskQueue {
					s.runTask(task)
				}
				return
			}
		}
	}()
}

// SchedulePeriodicTask periodically runs low-priority tasks
func (s *Scheduler) SchedulePeriodicTask(interval time.Duration, lowTask Task) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run the task on startup
	s.lowPriorityLock.Lock()
	s.wg.Add(1)
	s.runTask(lowTask)
	s.lowPriorityLock.Unlock()

	for {
		select {
		case <-ticker.C:
			// Ensure low-priority tasks don't interfere with high-priority task handling
			s.lowPriorityLock.Lock()
			s.wg.Add(1)
			select {
			case s.taskQueue <- lowTask:
				s.log.Debugf("scheduled periodic task %s", lowTask.Name)
			default:
				s.wg.Done()
				s.log.Infof("skipped periodic task %s, queue full", lowTask.Name)
			}
			s.lowPriorityLock.Unlock()
		case <-s.stopChan:
			// Stop scheduling periodic tasks
			return
		}
	}
}

// ScheduleHighPriorityTask runs a high-priority task asap
func (s *Scheduler) ScheduleHighPriorityTask(task Task) {
	s.wg.Add(1) // Add to wait group for the high-priority task
	s.taskQueue <- task
}

// StopScheduler waits for all tasks to complete and stops the scheduler
func (s *Scheduler) StopScheduler() {
	s.log.Info("stopping scheduler")
	close(s.stopChan)  // Signal the scheduler to stop
	close(s.taskQueue) // Close the task queue to prevent further submissions
	s.wg.Wait()        // Wait for all tasks to complete
	s.log.Info("scheduler stopped")
}
