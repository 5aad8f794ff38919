// Package anchor publishes ILOCK ledger events to a Hedera Consensus Service
// topic and rebuilds a read model from that topic through the mirror node.
//
// A Publisher is an ilock.EventSink: it queues every event the token emits
// and submits them in sequence order when flushed, so a network failure
// never rolls back or blocks the ledger. An Indexer replays the topic and
// can audit the result against a token snapshot.
//
//	publisher, _ := anchor.NewPublisher(anchor.PublisherConfig{TopicID: "0.0.5005", Submitter: submitter})
//	token, _ := ilock.New(ilock.DefaultSettings(), owner, ilock.WithEventSink(publisher))
//	_, _ = publisher.Flush(ctx)
package anchor
