package table_test

import (
	"sync"
	"testing"
	"time"

	"github.com/okian/racerdash/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClock records scheduled callbacks so tests decide when they fire.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) table.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every timer that was not stopped, like a clock moving past all deadlines.
func (c *fakeClock) fireAll() int {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	fired := 0
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
			fired++
		}
	}
	return fired
}

func TestDebouncer(t *testing.T) {
	Convey("Given a debouncer on a fake clock", t, func() {
		clock := &fakeClock{}
		d := table.NewDebouncer(200*time.Millisecond, clock.AfterFunc)
		var got []string

		Convey("When triggered three times in a burst", func() {
			d.Trigger(func() { got = append(got, "a") })
			d.Trigger(func() { got = append(got, "ab") })
			d.Trigger(func() { got = append(got, "abc") })
			So(d.Pending(), ShouldBeTrue)

			Convey("Then only the last call runs once the delay passes", func() {
				So(clock.fireAll(), ShouldEqual, 1)
				So(got, ShouldResemble, []string{"abc"})
				So(d.Pending(), ShouldBeFalse)
			})
		})

		Convey("When flushed before the timer fires", func() {
			d.Trigger(func() { got = append(got, "x") })

			Convey("Then the call runs now and the timer is spent", func() {
				So(d.Flush(), ShouldBeTrue)
				So(got, ShouldResemble, []string{"x"})
				So(clock.fireAll(), ShouldEqual, 0)
				So(d.Flush(), ShouldBeFalse)
			})
		})

		Convey("When cancelled", func() {
			d.Trigger(func() { got = append(got, "x") })
			So(d.Cancel(), ShouldBeTrue)

			Convey("Then nothing runs", func() {
				So(clock.fireAll(), ShouldEqual, 0)
				So(got, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a debouncer without delay", t, func() {
		d := table.NewDebouncer(0, nil)
		ran := false
		d.Trigger(func() { ran = true })
		So(ran, ShouldBeTrue)
	})
}

func TestEngineDebouncedFilter(t *testing.T) {
	Convey("Given an engine with a debounced filter", t, func() {
		clock := &fakeClock{}
		var applied []string
		e := table.New(manyRacers(20), racerColumns(),
			table.WithAfterFunc(clock.AfterFunc),
			table.WithOnFilterApplied(func(text string) { applied = append(applied, text) }),
		)

		Convey("When typing several values quickly", func() {
			e.SetFilterText("r")
			e.SetFilterText("racer 0")
			e.SetFilterText("racer 05")

			Convey("Then nothing is filtered until the timer fires", func() {
				So(e.FilterText(), ShouldEqual, "")
				So(e.FilterPending(), ShouldBeTrue)
				So(e.View().FilteredCount, ShouldEqual, 20)
			})

			Convey("Then only the last value is applied", func() {
				clock.fireAll()
				So(e.FilterText(), ShouldEqual, "racer 05")
				So(e.View().FilteredCount, ShouldEqual, 1)
				So(applied, ShouldResemble, []string{"racer 05"})
			})

			Convey("Then Flush applies it immediately", func() {
				So(e.Flush(), ShouldBeTrue)
				So(e.View().FilteredCount, ShouldEqual, 1)
			})
		})

		Convey("When closed with a pending value", func() {
			e.SetFilterText("racer 1")
			e.Close()

			Convey("Then the value never lands", func() {
				clock.fireAll()
				So(e.FilterText(), ShouldEqual, "")
			})
		})
	})

	Convey("Given an engine on the real clock", t, func() {
		e := table.New(manyRacers(12), racerColumns(), table.WithFilterDebounce(5*time.Millisecond))
		e.SetFilterText("racer 11")

		Convey("Then the filter lands after the delay", func() {
			deadline := time.Now().Add(2 * time.Second)
			for e.FilterText() == "" && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			So(e.View().FilteredCount, ShouldEqual, 1)
		})
	})
}
