package common

import (
	"sync"
	"time"
)

type Job func() error

// Debouncer coalesces bursts of triggers into a single run of `job` on a background goroutine:
// the job runs only after `delay` has passed since the last trigger. Stop() runs a still-pending
// job before returning, so no trigger is ever lost on shutdown.
type Debouncer struct {
	job            Job
	delay          time.Duration
	triggerChannel chan struct{}
	stopChannel    chan struct{}
	waitGroup      sync.WaitGroup
	logger         Logger
}

func NewDebouncer(job Job, delay time.Duration, logger Logger) *Debouncer {
	debouncer := &Debouncer{
		job:            job,
		delay:          delay,
		triggerChannel: make(chan struct{}, 128),
		stopChannel:    make(chan struct{}),
		logger:         logger,
	}
	debouncer.waitGroup.Add(1)
	go debouncer.run()
	return debouncer
}

func (d *Debouncer) Trigger() {
	d.triggerChannel <- struct{}{}
}

func (d *Debouncer) Stop() {
	d.stopChannel <- struct{}{}
	d.waitGroup.Wait()
}

func (d *Debouncer) run() {
	var timerChannel <-chan time.Time
	var timer *time.Timer
	pending := false
	for {
		select {
		case <-d.triggerChannel:
			pending = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(d.delay)
			timerChannel = timer.C
		case <-timerChannel:
			pending = false
			timerChannel = nil
			d.runJob()
		case <-d.stopChannel:
			if timer != nil {
				timer.Stop()
			}
			// Triggers can still sit in the buffer if Stop() raced with Trigger().
			drained := false
			for !drained {
				select {
				case <-d.triggerChannel:
					pending = true
				default:
					drained = true
				}
			}
			if pending {
				d.runJob()
			}
			d.waitGroup.Done()
			return
		}
	}
}

func (d *Debouncer) runJob() {
	err := d.job()
	if err != nil {
		d.logger.Log("failed to process a debounced job: " + err.Error())
	}
}
