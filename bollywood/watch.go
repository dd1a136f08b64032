package bollywood

// watcher is the receiving end of a liveness watch: either an actor
// mailbox or, for Ask, a channel.
type watcher struct {
	pid *PID
	ch  chan error
}

func (w watcher) notify(e *Engine, who *PID, ref WatchRef, reason error) {
	if w.ch != nil {
		select {
		case w.ch <- reason:
		default:
		}
		return
	}
	e.Send(w.pid, Terminated{Ref: ref, Who: who, Reason: reason}, who)
}

// Watch monitors target on behalf of the watcher actor. When target
// terminates the watcher receives exactly one Terminated message carrying
// the returned ref. Watching an actor that is already gone delivers
// Terminated with ErrNoProcess right away.
func (e *Engine) Watch(watcherPID, target *PID) WatchRef {
	return e.watch(target, watcher{pid: watcherPID})
}

func (e *Engine) watch(target *PID, w watcher) WatchRef {
	ref := newWatchRef()
	proc := e.lookup(target)
	if proc == nil || !proc.addWatcher(ref, w) {
		w.notify(e, target, ref, ErrNoProcess)
	}
	return ref
}

// Unwatch removes a watch. Notifications already delivered are not recalled.
func (e *Engine) Unwatch(target *PID, ref WatchRef) {
	if proc := e.lookup(target); proc != nil {
		proc.removeWatcher(ref)
	}
}
