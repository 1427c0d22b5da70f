// Package feed implements the load-more pagination core of the community feed.
//
// A Manager owns one feed view's state: the fetched post buffer, the active
// search/filter criteria, and the display page. Every load-more request is
// resolved in one of two modes:
//
//   - server: no criteria active; fetch the next backend page and append it.
//   - client: criteria active; reveal the next slice of the filtered buffer
//     without touching the network.
//
// When a client-side filter starves the visible remainder and the backend is
// known to hold more posts, the manager transparently fetches up to three
// extra batches ("auto-fetch") before revealing, so the user is not shown a
// falsely exhausted list. Auto-fetch is observable as its own phase.
//
// Example usage:
//
//	mgr, err := feed.New(backendClient, feed.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	if err := mgr.LoadMore(ctx); err != nil && !errors.Is(err, feed.ErrFetchInProgress) {
//		// render retry affordance; LoadMore retries the same page
//	}
//
//	mgr.UpdateSearch("ambient")   // client mode, view re-derived from buffer
//	mgr.ClearSearch()             // back to server mode, page reset
//
//	snap := mgr.Snapshot()
//	render(snap.Posts, snap.HasMore, snap.Phase)
//
// Guarantees the surrounding UI code relies on:
//
//   - At most one backend fetch is in flight; concurrent LoadMore calls are
//     rejected with ErrFetchInProgress, never queued.
//   - A failed fetch leaves the buffer and page cursor untouched; retrying
//     cannot duplicate posts (pages are committed by cursor, posts deduped by
//     ID).
//   - Responses that complete after a criteria change are discarded, not
//     applied to the newer state.
//   - The visible view is a pure function of (buffer, criteria).
package feed
