// Package anim builds piecewise interpolation timelines for animated
// variables.
//
// An Animation owns a Script. Running the script once produces, for every
// Variable it moves, an ordered list of Segments; after that, sampling a
// variable at any frame is a pure lookup. Scripts are never re-invoked per
// frame.
//
// VIRTUAL TIME
//
// A Trace keeps a local cursor, now, starting at 0. Sleep and Move do not
// advance it; they return a Handle carrying an end frame. Resolving the
// handle (Await or Then) moves now forward to that frame, once. Parallel
// joins handles into one whose end frame is the latest of them, so several
// tweens can be started side by side and waited on together:
//
//	x := tr.Move(posX).To(anim.Number(100), 30, anim.EaseInOutCubic)
//	y := tr.Move(posY).To(anim.Number(50), 45, nil)
//	tr.Parallel(x, y).Await()
//	tr.Sleep(10).Await()
//
// The script returns when it is done; nothing is asynchronous.
//
// OWNERSHIP
//
// Each run of an Animation claims the variables it moves under a fresh
// OwnerID from an Arena. A variable claimed by one live owner cannot be
// moved by another. Re-running (SetDeps with changed dependencies) and
// unmounting release every claim and clear the segments written under it
// before anything new is written. Owner ids are never reused.
//
// MISUSE
//
// Sharing a variable between live animations and moving a variable to a
// value of a different shape are authoring bugs. The offending write is
// always skipped. With development mode on, Run returns a *MisuseError;
// otherwise the error is logged and the rest of the script continues.
package anim
