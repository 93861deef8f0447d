package ws

import (
	"io"
	"sync/atomic"

	"github.com/klauspost/compress/zlib"
)

// inflater 连接级共享的 zlib 解压流
// 帧数据在出现结束标记前暂存，完整后写入流，由解码协程按顺序产出数据包
type inflater struct {
	pw      *io.PipeWriter
	pending []byte
	closing atomic.Bool
	done    chan struct{}
}

func newInflater(codec Codec, onPacket func(*Packet), onError func(error)) *inflater {
	pr, pw := io.Pipe()
	inf := &inflater{pw: pw, done: make(chan struct{})}
	go inf.run(pr, codec, onPacket, onError)
	return inf
}

func (inf *inflater) run(pr *io.PipeReader, codec Codec, onPacket func(*Packet), onError func(error)) {
	defer close(inf.done)

	fail := func(err error) {
		pr.CloseWithError(err)
		if !inf.closing.Load() {
			onError(ErrZlib.WithMessage("ZLib ERROR: " + err.Error()).WithError(err))
		}
	}

	zr, err := zlib.NewReader(pr)
	if err != nil {
		fail(err)
		return
	}
	defer zr.Close()

	dec := codec.NewStreamDecoder(zr)
	for {
		p, err := dec.Decode()
		if err != nil {
			fail(err)
			return
		}
		onPacket(p)
	}
}

// feed 写入一帧压缩数据
func (inf *inflater) feed(data []byte) error {
	chunk, complete := splitFrame(data)
	inf.pending = append(inf.pending, chunk...)
	if !complete {
		return nil
	}
	buf := inf.pending
	inf.pending = nil
	if _, err := inf.pw.Write(buf); err != nil {
		return ErrZlib.WithError(err)
	}
	return nil
}

func (inf *inflater) close() {
	inf.closing.Store(true)
	_ = inf.pw.Close()
}
